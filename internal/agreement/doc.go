// Package agreement compares the sway features of the balance board with
// those of the force plate, trial by trial.
package agreement
