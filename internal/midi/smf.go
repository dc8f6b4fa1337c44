// Package midi hand-rolls a Standard MIDI File (format 1, 480 PPQ) encoder
// for an Arrangement.
//
// spec.md §4.H requires bit-exact, deterministic output byte-for-byte given
// the same Arrangement, which rules out any third-party SMF library whose
// exact encoding choices (running status, meta-event ordering, chunk
// padding) aren't pinned down by its own documentation. The teacher's
// exporter package takes the same approach for every external binary/XML
// format it emits (internal/exporter/rekordbox.go, internal/exporter's
// other format writers): hand-roll the serializer against
// encoding/binary rather than depend on a library's unverified byte-level
// behavior. See DESIGN.md.
package midi

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"sort"

	"github.com/cartomix/beatbox/internal/model"
)

// ppq is the SMF division: pulses (ticks) per quarter note.
const ppq = 480

// Percussion lanes share GM channel 9 (0-indexed); melodic lanes get their
// own channel each.
const (
	channelDrums = 9
	channelBass  = 0
	channelPad   = 1
	channelArp   = 2
)

// Encode serializes an Arrangement as a format-1 Standard MIDI File: one
// conductor track (tempo, time signature, name) followed by one track per
// lane, in Arrangement.AllLanes order.
func Encode(a model.Arrangement, timeSig model.TimeSignature) ([]byte, error) {
	lanes := a.AllLanes()
	numTracks := 1 + len(lanes)

	var buf bytes.Buffer
	buf.WriteString("MThd")
	writeUint32(&buf, 6)
	writeUint16(&buf, 1) // format 1
	writeUint16(&buf, uint16(numTracks))
	writeUint16(&buf, ppq)

	conductor := buildConductorTrack(a, timeSig)
	buf.Write(conductor)

	for _, lane := range lanes {
		track := buildLaneTrack(lane, a.BPM)
		buf.Write(track)
	}

	return buf.Bytes(), nil
}

func buildConductorTrack(a model.Arrangement, timeSig model.TimeSignature) []byte {
	var events bytes.Buffer

	name := "beatbox arrangement"
	writeVLQ(&events, 0)
	writeMetaText(&events, 0x03, name)

	writeVLQ(&events, 0)
	microsPerQuarter := uint32(60000000.0/a.BPM + 0.5)
	writeMetaTempo(&events, microsPerQuarter)

	writeVLQ(&events, 0)
	writeMetaTimeSignature(&events, timeSig)

	endTick := msToTicks(a.TotalDurationMs, a.BPM)
	writeVLQ(&events, endTick)
	writeMetaEndOfTrack(&events)

	return wrapTrackChunk(events.Bytes())
}

func buildLaneTrack(lane model.Lane, bpm float64) []byte {
	channel := channelFor(lane.Name)

	type tickEvent struct {
		tick     int
		isOn     bool
		pitch    int
		velocity int
	}

	var ticks []tickEvent
	for _, n := range lane.Events {
		onTick := msToTicks(n.TimestampMs, bpm)
		offTick := msToTicks(n.TimestampMs+n.DurationMs, bpm)
		if offTick <= onTick {
			offTick = onTick + 1
		}
		ticks = append(ticks, tickEvent{tick: onTick, isOn: true, pitch: n.Pitch, velocity: n.Velocity})
		ticks = append(ticks, tickEvent{tick: offTick, isOn: false, pitch: n.Pitch})
	}

	sort.SliceStable(ticks, func(i, j int) bool {
		if ticks[i].tick != ticks[j].tick {
			return ticks[i].tick < ticks[j].tick
		}
		// Note-off before note-on at equal ticks, so a re-triggered note is
		// not cut off by the previous note's note-off on the same tick.
		return !ticks[i].isOn && ticks[j].isOn
	})

	var events bytes.Buffer
	writeVLQ(&events, 0)
	writeMetaText(&events, 0x03, lane.Name)

	prevTick := 0
	for _, ev := range ticks {
		delta := ev.tick - prevTick
		prevTick = ev.tick
		writeVLQ(&events, delta)
		if ev.isOn {
			events.WriteByte(0x90 | byte(channel))
			events.WriteByte(byte(clamp7(ev.pitch)))
			events.WriteByte(byte(clamp7(ev.velocity)))
		} else {
			events.WriteByte(0x80 | byte(channel))
			events.WriteByte(byte(clamp7(ev.pitch)))
			events.WriteByte(0)
		}
	}

	writeVLQ(&events, 0)
	writeMetaEndOfTrack(&events)

	return wrapTrackChunk(events.Bytes())
}

func channelFor(lane string) int {
	switch lane {
	case "kick", "snare", "hat":
		return channelDrums
	case "bass":
		return channelBass
	case "pad":
		return channelPad
	case "arp":
		return channelArp
	default:
		return 0
	}
}

// msToTicks converts a millisecond timestamp to ticks at the arrangement's
// constant tempo (no mid-arrangement tempo changes in this format).
func msToTicks(ms, bpm float64) int {
	beatMs := 60000.0 / bpm
	return int(ms/beatMs*ppq + 0.5)
}

func clamp7(v int) int {
	if v < 0 {
		return 0
	}
	if v > 127 {
		return 127
	}
	return v
}

func wrapTrackChunk(events []byte) []byte {
	var buf bytes.Buffer
	buf.WriteString("MTrk")
	writeUint32(&buf, uint32(len(events)))
	buf.Write(events)
	return buf.Bytes()
}

func writeUint32(buf *bytes.Buffer, v uint32) {
	var b [4]byte
	binary.BigEndian.PutUint32(b[:], v)
	buf.Write(b[:])
}

func writeUint16(buf *bytes.Buffer, v uint16) {
	var b [2]byte
	binary.BigEndian.PutUint16(b[:], v)
	buf.Write(b[:])
}

// writeVLQ writes v as a MIDI variable-length quantity (big-endian,
// 7 bits per byte, high bit set on every byte but the last).
func writeVLQ(buf *bytes.Buffer, v int) {
	if v < 0 {
		v = 0
	}
	var stack [5]byte
	n := 0
	stack[n] = byte(v & 0x7f)
	n++
	v >>= 7
	for v > 0 {
		stack[n] = byte(v&0x7f) | 0x80
		n++
		v >>= 7
	}
	for i := n - 1; i >= 0; i-- {
		buf.WriteByte(stack[i])
	}
}

func writeMetaText(buf *bytes.Buffer, metaType byte, text string) {
	buf.WriteByte(0xFF)
	buf.WriteByte(metaType)
	writeVLQ(buf, len(text))
	buf.WriteString(text)
}

func writeMetaTempo(buf *bytes.Buffer, microsPerQuarter uint32) {
	buf.WriteByte(0xFF)
	buf.WriteByte(0x51)
	writeVLQ(buf, 3)
	buf.WriteByte(byte(microsPerQuarter >> 16))
	buf.WriteByte(byte(microsPerQuarter >> 8))
	buf.WriteByte(byte(microsPerQuarter))
}

func writeMetaTimeSignature(buf *bytes.Buffer, ts model.TimeSignature) {
	buf.WriteByte(0xFF)
	buf.WriteByte(0x58)
	writeVLQ(buf, 4)
	buf.WriteByte(byte(ts.Numerator))
	buf.WriteByte(byte(denomPow2(ts.Denominator)))
	buf.WriteByte(24) // MIDI clocks per metronome click
	buf.WriteByte(8)  // 32nd notes per quarter note
}

func writeMetaEndOfTrack(buf *bytes.Buffer) {
	buf.WriteByte(0xFF)
	buf.WriteByte(0x2F)
	writeVLQ(buf, 0)
}

func denomPow2(denom int) int {
	exp := 0
	for d := denom; d > 1; d >>= 1 {
		exp++
	}
	return exp
}

// ValidateChunks is a lightweight structural sanity check used by
// cmd/midiverify: confirms the header chunk and every track chunk are
// well-formed (correct magic, length matches remaining bytes).
func ValidateChunks(data []byte) error {
	if len(data) < 14 || string(data[0:4]) != "MThd" {
		return fmt.Errorf("missing MThd header")
	}
	headerLen := binary.BigEndian.Uint32(data[4:8])
	pos := 8 + int(headerLen)
	for pos < len(data) {
		if pos+8 > len(data) {
			return fmt.Errorf("truncated chunk header at byte %d", pos)
		}
		if string(data[pos:pos+4]) != "MTrk" {
			return fmt.Errorf("expected MTrk at byte %d, got %q", pos, data[pos:pos+4])
		}
		length := binary.BigEndian.Uint32(data[pos+4 : pos+8])
		pos += 8 + int(length)
	}
	if pos != len(data) {
		return fmt.Errorf("trailing bytes after last chunk")
	}
	return nil
}
