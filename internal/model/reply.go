package model

import "strings"

// SegmentKind distinguishes reply segment payloads.
type SegmentKind string

// Segment kinds.
const (
	SegmentText  SegmentKind = "text"
	SegmentImage SegmentKind = "image"
)

// Segment is one element of an outbound reply: either a text block or an
// attachment directive referencing a stored document.
type Segment struct {
	Kind SegmentKind
	Text string
	Ref  string
}

// Reply is the structured outcome handed back to the transport layer.
// An empty reply means there is nothing to send.
type Reply struct {
	Segments []Segment
}

// TextReply builds a reply consisting of a single text segment.
func TextReply(text string) Reply {
	return Reply{Segments: []Segment{{Kind: SegmentText, Text: text}}}
}

// Empty reports whether the reply carries nothing to send.
func (r Reply) Empty() bool {
	return len(r.Segments) == 0
}

// AddText appends a text segment.
func (r *Reply) AddText(text string) {
	r.Segments = append(r.Segments, Segment{Kind: SegmentText, Text: text})
}

// AddImage appends an attachment directive.
func (r *Reply) AddImage(ref string) {
	r.Segments = append(r.Segments, Segment{Kind: SegmentImage, Ref: ref})
}

// Text joins all text segments, mostly useful in tests and logs.
func (r Reply) Text() string {
	parts := make([]string, 0, len(r.Segments))
	for _, seg := range r.Segments {
		if seg.Kind == SegmentText {
			parts = append(parts, seg.Text)
		}
	}
	return strings.Join(parts, "\n")
}
