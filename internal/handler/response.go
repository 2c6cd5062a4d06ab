package handler

import (
	"net/http"
	"time"

	"github.com/go-faster/jx"
	"github.com/shopspring/decimal"
)

// encoder is implemented by response payloads.
type encoder interface {
	Encode(e *jx.Encoder)
}

// encodeFunc adapts a function to encoder.
type encodeFunc func(e *jx.Encoder)

func (f encodeFunc) Encode(e *jx.Encoder) { f(e) }

// writeJSON writes the {success, statusCode, message, data} envelope. data
// may be nil, in which case it is encoded as null.
func writeJSON(w http.ResponseWriter, status int, message string, data encoder) {
	e := jx.GetEncoder()
	defer jx.PutEncoder(e)

	e.ObjStart()
	e.FieldStart("success")
	e.Bool(status < http.StatusBadRequest)
	e.FieldStart("statusCode")
	e.Int(status)
	e.FieldStart("message")
	e.Str(message)
	e.FieldStart("data")
	if data == nil {
		e.Null()
	} else {
		data.Encode(e)
	}
	e.ObjEnd()

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(e.Bytes())
}

func money(e *jx.Encoder, d decimal.Decimal) {
	e.Num(jx.Num(d.StringFixed(2)))
}

func timestamp(e *jx.Encoder, t time.Time) {
	if t.IsZero() {
		e.Null()
		return
	}
	e.Str(t.UTC().Format(time.RFC3339))
}

func stringArray(e *jx.Encoder, v []string) {
	e.ArrStart()
	for _, s := range v {
		e.Str(s)
	}
	e.ArrEnd()
}
