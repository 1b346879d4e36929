package types

import "envmon-go/x/linebuf"

// MaxFrameLen bounds a telemetry frame: a 100-byte buffer minus its
// terminator.
const MaxFrameLen = 99

// Frame is one formatted telemetry line.
type Frame string

// ComposeFrame formats
//
//	DD/MM/YYYY HH:MM:SS, Temp: T.TT C, Hum: H.HH%, Luz: L
//
// Absent values print as the -1 sentinel. ok is false if the line would
// not fit in MaxFrameLen; no partial frame is ever returned.
func ComposeFrame(c Clock, temp, hum Opt[float32], light Opt[int]) (f Frame, ok bool) {
	l := linebuf.New(MaxFrameLen)
	c.AppendDate(l).Byte(' ')
	c.AppendTime(l)
	l.Str(", Temp: ").Fixed(temp.Or(AbsentReal), 2)
	l.Str(" C, Hum: ").Fixed(hum.Or(AbsentReal), 2)
	l.Str("%, Luz: ").Int(light.Or(AbsentInt))
	if l.Truncated() {
		return "", false
	}
	return Frame(l.String()), true
}
