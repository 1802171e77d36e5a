package server

import (
	"fmt"
	"time"

	"gopkg.in/mgo.v2/bson"
)

// WriteConcern is the durability acknowledgment level requested for
// write operations. It is part of a database handle's identity: handles
// that differ only in write concern are distinct.
type WriteConcern struct {
	// W is the number of nodes that must acknowledge a write. Ignored
	// when WMode is set.
	W int
	// WMode is a named acknowledgment mode such as "majority".
	WMode    string
	Journal  bool
	FSync    bool
	WTimeout time.Duration
}

// Acknowledged is the default write concern: one node acknowledges.
func Acknowledged() WriteConcern {
	return WriteConcern{W: 1}
}

// Unacknowledged requests no acknowledgment at all.
func Unacknowledged() WriteConcern {
	return WriteConcern{W: 0}
}

// Majority requires acknowledgment from a majority of the replica set.
func Majority() WriteConcern {
	return WriteConcern{WMode: "majority"}
}

// Key gets the identity of the write concern.
func (wc WriteConcern) Key() string {
	w := fmt.Sprintf("%d", wc.W)
	if wc.WMode != "" {
		w = wc.WMode
	}
	return fmt.Sprintf("w=%s&j=%t&fsync=%t&wtimeout=%s", w, wc.Journal, wc.FSync, wc.WTimeout)
}

// getLastErrorCommand builds the getLastError command carrying the
// write concern's parameters.
func (wc WriteConcern) getLastErrorCommand() bson.D {
	cmd := bson.D{{Name: "getLastError", Value: 1}}
	if wc.WMode != "" {
		cmd = append(cmd, bson.DocElem{Name: "w", Value: wc.WMode})
	} else if wc.W > 1 {
		cmd = append(cmd, bson.DocElem{Name: "w", Value: wc.W})
	}
	if wc.Journal {
		cmd = append(cmd, bson.DocElem{Name: "j", Value: true})
	}
	if wc.FSync {
		cmd = append(cmd, bson.DocElem{Name: "fsync", Value: true})
	}
	if wc.WTimeout > 0 {
		cmd = append(cmd, bson.DocElem{Name: "wtimeout", Value: int(wc.WTimeout / time.Millisecond)})
	}
	return cmd
}
