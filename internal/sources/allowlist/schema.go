package allowlist

// SeedFile represents the optional allow-list seed file.
//
// operators:
//   - id: 123456789
//     note: "build machine"
//   - id: 987654321
type SeedFile struct {
	Operators []OperatorEntry `yaml:"operators"`
}

// OperatorEntry is one seeded operator. Note is display-only.
type OperatorEntry struct {
	ID   int64  `yaml:"id"`
	Note string `yaml:"note,omitempty"`
}
