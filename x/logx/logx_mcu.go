//go:build rp2040 || rp2350

package logx

import (
	"time"

	"envmon-go/x/linebuf"
)

// emit prints "LEVEL msg k=v ..." with println; fmt is too heavy here.
func emit(l Level, msg string, kv []any) {
	b := linebuf.New(160)
	b.Str(l.String()).Byte(' ').Str(msg)
	for i := 0; i+1 < len(kv); i += 2 {
		k, _ := kv[i].(string)
		b.Byte(' ').Str(k).Byte('=')
		value(b, kv[i+1])
	}
	println(b.String())
}

func value(b *linebuf.Line, v any) {
	switch x := v.(type) {
	case string:
		b.Str(x)
	case int:
		b.Int(x)
	case int32:
		b.Int(int(x))
	case uint32:
		b.Int(int(x))
	case uint8:
		b.Int(int(x))
	case bool:
		if x {
			b.Str("true")
		} else {
			b.Str("false")
		}
	case float32:
		b.Fixed(x, 2)
	case time.Duration:
		b.Int(int(x.Milliseconds())).Str("ms")
	case error:
		b.Str(x.Error())
	case interface{ String() string }:
		b.Str(x.String())
	default:
		b.Byte('?')
	}
}
