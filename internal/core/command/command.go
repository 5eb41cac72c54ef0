package command

import "time"

// Kind identifies a command variant. Results carry the Kind of the command
// that produced them.
type Kind uint8

// Command kinds.
const (
	KindSet Kind = iota + 1
	KindGet
	KindDel
	KindExists
	KindExpire
	KindIncr
	KindDecr
	KindClear
	KindSave
	KindLoad
)

var kindVerbs = [...]string{
	KindSet:    "SET",
	KindGet:    "GET",
	KindDel:    "DEL",
	KindExists: "EXISTS",
	KindExpire: "EXPIRE",
	KindIncr:   "INCR",
	KindDecr:   "DECR",
	KindClear:  "CLEAR",
	KindSave:   "SAVE",
	KindLoad:   "LOAD",
}

// Verbs lists every verb of the command language in declaration order.
func Verbs() []string {
	verbs := make([]string, 0, len(kindVerbs)-1)
	for _, v := range kindVerbs[1:] {
		verbs = append(verbs, v)
	}
	return verbs
}

// String returns the protocol verb of the kind.
func (k Kind) String() string {
	if int(k) < len(kindVerbs) && kindVerbs[k] != "" {
		return kindVerbs[k]
	}
	return "UNKNOWN"
}

// Command is the closed set of requests understood by the engine.
//
// The set is sealed: only the types declared in this file implement it, so a
// type switch over them is exhaustive.
type Command interface {
	Kind() Kind
	sealed()
}

// Set stores Value under Key, replacing any previous entry.
type Set struct {
	Key   string
	Value string
}

// Get reads the value under Key.
type Get struct {
	Key string
}

// Del removes Key.
type Del struct {
	Key string
}

// Exists reports whether Key holds a live entry.
type Exists struct {
	Key string
}

// Expire sets the expiration of Key to now + TTL.
type Expire struct {
	Key string
	TTL time.Duration
}

// Incr adds one to the integer stored under Key.
type Incr struct {
	Key string
}

// Decr subtracts one from the integer stored under Key.
type Decr struct {
	Key string
}

// Clear empties the store.
type Clear struct{}

// Save writes a snapshot of the store to the snapshot path.
type Save struct{}

// Load replaces the store with the snapshot at the snapshot path.
type Load struct{}

func (Set) Kind() Kind    { return KindSet }
func (Get) Kind() Kind    { return KindGet }
func (Del) Kind() Kind    { return KindDel }
func (Exists) Kind() Kind { return KindExists }
func (Expire) Kind() Kind { return KindExpire }
func (Incr) Kind() Kind   { return KindIncr }
func (Decr) Kind() Kind   { return KindDecr }
func (Clear) Kind() Kind  { return KindClear }
func (Save) Kind() Kind   { return KindSave }
func (Load) Kind() Kind   { return KindLoad }

func (Set) sealed()    {}
func (Get) sealed()    {}
func (Del) sealed()    {}
func (Exists) sealed() {}
func (Expire) sealed() {}
func (Incr) sealed()   {}
func (Decr) sealed()   {}
func (Clear) sealed()  {}
func (Save) sealed()   {}
func (Load) sealed()   {}
