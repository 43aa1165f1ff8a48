package buffer

const (
	// InitialSize is the default payload capacity for a new Buffer.
	InitialSize = 1024

	// PrependSize is the space reserved in front of the read index so a
	// length or type header can be prepended without copying the payload.
	PrependSize = 8
)
