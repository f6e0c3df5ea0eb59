// Package hdds is a publish/subscribe middleware implementing the OMG Data
// Distribution Service data model over the RTPS wire protocol. Applications
// create a DomainParticipant, attach DataWriters and DataReaders to named
// Topics, and exchange typed samples subject to the QoS policies in the qos
// package.
package hdds

import (
	"github.com/hdds-io/hdds/codec"
)

// Marshaler is implemented by application sample types to encode
// themselves into CDR. Generated IDL bindings are out of scope; applications hand-write this method the way they would a generated
// one.
type Marshaler interface {
	MarshalCDR(w *codec.Writer) error
}

// Unmarshaler is implemented by application sample types to decode
// themselves from CDR.
type Unmarshaler interface {
	UnmarshalCDR(r *codec.Reader) error
}

func encode(m Marshaler) ([]byte, error) {
	w := codec.NewWriter(256)
	w.WriteHeader()
	if err := m.MarshalCDR(w); err != nil {
		return nil, err
	}
	return append([]byte(nil), w.Bytes()...), nil
}

func decode(data []byte, into Unmarshaler) error {
	r := codec.NewReader(data)
	if err := r.ReadHeader(); err != nil {
		return err
	}
	return into.UnmarshalCDR(r)
}
