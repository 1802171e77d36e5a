package model

// TopologyView is the set of nodes observed during a connect attempt.
// It is replaced wholesale, together with the connection pools, on
// every reconnect.
type TopologyView struct {
	Primary     Addr
	Secondaries []Addr
}
