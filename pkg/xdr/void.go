package xdr

// Void is the Marshaler for an RPC procedure's void argument or result
// (RFC 4506 §4.18): it reads and writes zero bytes. Generated client/
// server stubs use it in place of a wrapper type whenever a procedure's
// argument or result list is empty.
type Void struct{}

func (Void) XdrMarshal(*Encoder) error { return nil }

func (*Void) XdrUnmarshal(*Decoder) error { return nil }
