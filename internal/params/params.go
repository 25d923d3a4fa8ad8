package params

const (
	SecParam = 256
	SecBytes = SecParam / 8

	// MaxParties bounds the size of a party directory.
	MaxParties = 1 << 10

	// MaxRounds bounds the number of rounds a Context can be bound to.
	MaxRounds = 1 << 6
)
