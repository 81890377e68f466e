// Package regulator compiles the Adapted RegulaTor defense, a RegulaTor
// variant tuned for video streaming, into a pair of padding machines.
//
// The relay machine approximates the surge-and-decay send rate R·D^t with
// a chain of constant-rate states, each covering the same number of
// packets. The client machine sends one padding packet for every U
// packets it receives.
package regulator
