package model

// TopologyKind represents the type of topology a server target refers to.
type TopologyKind uint32

// TopologyKind constants.
const (
	Single     TopologyKind = 1
	ReplicaSet TopologyKind = 2
)

func (k TopologyKind) String() string {
	switch k {
	case Single:
		return "Single"
	case ReplicaSet:
		return "ReplicaSet"
	}
	return "Unknown"
}
