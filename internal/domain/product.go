package domain

// TimestampLayout is the canonical textual format for build timestamps.
const TimestampLayout = "2006-01-02 15:04:05.000000 +00:00"

// EmptySHA512 is the hex digest of the empty byte sequence, the default
// checksum for builds that have not been verified yet.
const EmptySHA512 = "cf83e1357eefb8bdf1542850d66d8007d620e4050b5715dc83f4a921d36ce9ce" +
	"47d0d13c5d85f2b0ff8318d2877eec2f63b931bd47417a81a538327af927da3e"

// Product is a tracked software family/item with descriptive metadata
type Product struct {
	ID          int64    `json:"id" db:"id"`
	Family      string   `json:"family" db:"family"`
	Name        string   `json:"name" db:"name"`
	Description string   `json:"description" db:"description"`
	Builds      []*Build `json:"builds"`
}

// Build is a versioned artifact record belonging to exactly one product
type Build struct {
	ID          int64  `json:"id" db:"id"`
	ProductID   int64  `json:"product_id" db:"product_id"`
	Description string `json:"description" db:"description"`
	Source      string `json:"source" db:"source"`
	Version     string `json:"version" db:"version"`
	Timestamp   string `json:"timestamp" db:"timestamp"`
	Target      string `json:"target" db:"target"`
	Taxonomy    string `json:"taxonomy,omitempty" db:"taxonomy"`
	SHA512      string `json:"sha512" db:"sha512"`
}
