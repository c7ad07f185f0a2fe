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

import "strings"

// reservedChars are the protocol delimiters: a name, tag or set value
// containing one of them would corrupt not just its own line but the
// parsing of the whole packet, so they are rejected, never sanitized.
const reservedChars = ":|@\n"

// checkMetric validates the metric name and the per-call tags before any
// byte is written, so a failing call leaves the packet buffer untouched.
// Default tags are validated once, at construction.
func checkMetric(stat string, tags []Tag) error {
	if strings.ContainsAny(stat, reservedChars) {
		return &EncodingError{Stat: stat, Reason: "name contains a reserved character"}
	}

	return checkTags(tags)
}

// checkTags validates tag names and string values against the protocol
// delimiters.
func checkTags(tags []Tag) error {
	for _, tag := range tags {
		if strings.ContainsAny(tag.name, reservedChars) {
			return &EncodingError{Stat: tag.name, Reason: "tag name contains a reserved character"}
		}

		if tag.typ == typeString && strings.ContainsAny(tag.strValue, reservedChars) {
			return &EncodingError{Stat: tag.name, Reason: "tag value contains a reserved character"}
		}
	}

	return nil
}

// appendName writes the opening of a metric line: prefix, name,
// name-joined tags and the ':' before the value.
func (c *Client) appendName(buf []byte, stat string, tags []Tag) []byte {
	buf = append(buf, c.options.MetricPrefix...)
	buf = append(buf, stat...)

	if c.options.TagFormat.Placement == TagPlacementName {
		buf = c.formatTags(buf, tags)
	}

	return append(buf, ':')
}

// appendSuffix writes the closing of a metric line: the type, the sampling
// annotation, suffix-placed tags and the line terminator.
func (c *Client) appendSuffix(buf []byte, kind string, rate Rate, tags []Tag) []byte {
	buf = append(buf, kind...)
	buf = append(buf, rate.suffix...)

	if c.options.TagFormat.Placement == TagPlacementSuffix {
		buf = c.formatTags(buf, tags)
	}

	return append(buf, '\n')
}
