package statsd

/*

Copyright (c) 2017 Andrey Smirnov

Permission is hereby granted, free of charge, to any person obtaining a copy
of this software and associated documentation files (the "Software"), to deal
in the Software without restriction, including without limitation the rights
to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
copies of the Software, and to permit persons to whom the Software is
furnished to do so, subject to the following conditions:

The above copyright notice and this permission notice shall be included in all
copies or substantial portions of the Software.

THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
SOFTWARE.

*/

import "strconv"

// TagPlacement picks where rendered tags land in the metric line.
type TagPlacement int

const (
	// TagPlacementName appends tags to the metric name, before the ':'.
	TagPlacementName TagPlacement = iota
	// TagPlacementSuffix appends tags after the value, type and rate.
	TagPlacementSuffix
)

// TagFormat defines the rendering style for metric tags.
type TagFormat struct {
	// Placement chooses between name-joined and suffix tags.
	Placement TagPlacement

	// FirstSeparator opens the tag block.
	FirstSeparator string

	// Separator splits consecutive tags.
	Separator byte

	// KeyValueSeparator splits a tag name from its value.
	KeyValueSeparator string
}

// Tag styles understood by common statsd servers.
var (
	// TagFormatInfluxDB renders ",name=value" joined to the metric name.
	TagFormatInfluxDB = &TagFormat{
		Placement:         TagPlacementName,
		FirstSeparator:    ",",
		Separator:         ',',
		KeyValueSeparator: "=",
	}

	// TagFormatDatadog renders "|#name:value" after the value and rate.
	TagFormatDatadog = &TagFormat{
		Placement:         TagPlacementSuffix,
		FirstSeparator:    "|#",
		Separator:         ',',
		KeyValueSeparator: ":",
	}

	// TagFormatGraphite renders ";name=value" joined to the metric name.
	TagFormatGraphite = &TagFormat{
		Placement:         TagPlacementName,
		FirstSeparator:    ";",
		Separator:         ';',
		KeyValueSeparator: "=",
	}

	// TagFormatOkmeter renders ".name_is_value" joined to the metric name.
	TagFormatOkmeter = &TagFormat{
		Placement:         TagPlacementName,
		FirstSeparator:    ".",
		Separator:         '.',
		KeyValueSeparator: "_is_",
	}
)

const (
	typeString = iota
	typeInt64
)

// Tag is a metric tag, a name with a string or integer value.
type Tag struct {
	name     string
	strValue string
	intValue int64
	typ      int
}

// Append renders the tag into buf using the style's key/value syntax.
func (t Tag) Append(buf []byte, style *TagFormat) []byte {
	buf = append(buf, t.name...)
	buf = append(buf, style.KeyValueSeparator...)

	if t.typ == typeString {
		return append(buf, t.strValue...)
	}

	return strconv.AppendInt(buf, t.intValue, 10)
}

// StringTag creates a Tag with a string value.
func StringTag(name, value string) Tag {
	return Tag{name: name, strValue: value, typ: typeString}
}

// IntTag creates a Tag with an integer value.
func IntTag(name string, value int) Tag {
	return Tag{name: name, intValue: int64(value), typ: typeInt64}
}

// Int64Tag creates a Tag with an int64 value.
func Int64Tag(name string, value int64) Tag {
	return Tag{name: name, intValue: value, typ: typeInt64}
}

// formatTags renders the client's default tags followed by the call's tags
// into buf.
func (c *Client) formatTags(buf []byte, tags []Tag) []byte {
	if len(c.options.DefaultTags)+len(tags) == 0 {
		return buf
	}

	format := c.options.TagFormat

	buf = append(buf, format.FirstSeparator...)

	for i, tag := range c.options.DefaultTags {
		if i != 0 {
			buf = append(buf, format.Separator)
		}

		buf = tag.Append(buf, format)
	}

	for i, tag := range tags {
		if i != 0 || len(c.options.DefaultTags) != 0 {
			buf = append(buf, format.Separator)
		}

		buf = tag.Append(buf, format)
	}

	return buf
}
