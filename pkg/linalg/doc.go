// Package linalg holds the fixed-dimension vector and matrix helpers the
// projection and tessellation code is built on.
//
// Vectors and matrices are the plain array types of mgl64, so every value
// lives on the stack. Helpers ending in To write into a caller-owned output
// and return it, which keeps steady-state frame updates allocation free.
package linalg
