package spectrum

// halfDivisor splits a DFT into its positive and negative halves.
const halfDivisor = 2
