package modes

// Mode selects environment dependent defaults, such as whether a daemon
// notifies its supervisor or whether sessions are given a close deadline.
type Mode int

const (
	ModeProduction Mode = iota + 1
	ModeDevelopment
)

func (m Mode) String() string {
	switch m {
	case ModeProduction:
		return "production"
	case ModeDevelopment:
		return "development"
	}
	return "unknown"
}
