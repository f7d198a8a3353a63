package tfs

import (
	"bufio"
	"errors"
	"strconv"
	"strings"
	"time"
)

// ErrMalformedChangeset is returned when tf changeset output carries no
// recognizable changeset header.
var ErrMalformedChangeset = errors.New("malformed changeset output")

// Item is one file touched by a changeset, as recorded by the server.
type Item struct {
	Kind       string // edit, add, delete, rename, ...
	ServerPath string // $/Project/Dir/File.txt
}

// Changeset is the parsed metadata of a single source changeset. It is
// produced once per replay iteration and never mutated afterwards.
type Changeset struct {
	ID      int
	User    string
	RawDate string
	Date    time.Time // zero when RawDate did not match a known layout
	Comment string
	Items   []Item
}

// Date layouts emitted by tf changeset, most specific first. The tool
// formats dates per machine locale; these cover the formats seen on
// en-US servers plus ISO output from newer clients.
var dateLayouts = []string{
	"Monday, January 2, 2006 3:04:05 PM",
	"Monday, 2 January 2006 15:04:05",
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02",
}

func parseDate(raw string) time.Time {
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t
		}
	}
	return time.Time{}
}

// ParseChangeset parses the output of `tf changeset <id> /noprompt`:
//
//	Changeset: 42
//	User: DOMAIN\jdoe
//	Date: Thursday, May 1, 2014 10:03:12 AM
//
//	Comment:
//	  Fix the widget
//
//	Items:
//	  edit $/Project/Dir/File.txt
//	  add  $/Project/other.txt
//
// Sections other than Comment and Items (check-in notes, policy
// warnings) are ignored.
func ParseChangeset(raw string) (*Changeset, error) {
	cs := &Changeset{}
	section := ""
	var comment []string

	sc := bufio.NewScanner(strings.NewReader(raw))
	for sc.Scan() {
		rawLine := sc.Text()
		line := strings.TrimSpace(rawLine)

		if section == "comment" {
			// The comment body is indented; it runs until the first
			// de-indented line, so body lines that look like section
			// headers ("Items:") stay part of the message.
			if rawLine == "" || rawLine[0] == ' ' || rawLine[0] == '\t' {
				comment = append(comment, line)
				continue
			}
			section = ""
		}

		switch {
		case strings.HasPrefix(line, "Changeset:"):
			id, err := strconv.Atoi(strings.TrimSpace(strings.TrimPrefix(line, "Changeset:")))
			if err == nil {
				cs.ID = id
			}
			section = ""
		case strings.HasPrefix(line, "User:"):
			cs.User = strings.TrimSpace(strings.TrimPrefix(line, "User:"))
			section = ""
		case strings.HasPrefix(line, "Date:"):
			cs.RawDate = strings.TrimSpace(strings.TrimPrefix(line, "Date:"))
			cs.Date = parseDate(cs.RawDate)
			section = ""
		case line == "Comment:":
			section = "comment"
		case line == "Items:":
			section = "items"
		case strings.HasSuffix(line, ":"):
			// Some other section header, e.g. "Check-in Notes:".
			section = ""
		default:
			if section == "items" {
				if i := strings.Index(line, "$/"); i >= 0 {
					cs.Items = append(cs.Items, Item{
						Kind:       strings.TrimSpace(line[:i]),
						ServerPath: line[i:],
					})
				}
			}
		}
	}

	if cs.ID == 0 {
		return nil, ErrMalformedChangeset
	}
	cs.Comment = strings.TrimSpace(strings.Join(comment, "\n"))
	return cs, nil
}

// RelativeItems returns the slash-separated paths of the changeset's
// items that fall under the given server root, keeping the casing the
// server recorded. The root comparison is case-insensitive because the
// server itself is.
func (cs *Changeset) RelativeItems(root string) []string {
	root = strings.TrimSuffix(root, "/")

	var out []string
	for _, it := range cs.Items {
		p := it.ServerPath
		// The separator check keeps sibling projects sharing the root
		// as a name prefix ($/Project2 under root $/Project) out.
		if len(p) <= len(root)+1 || !strings.EqualFold(p[:len(root)], root) || p[len(root)] != '/' {
			continue
		}
		out = append(out, p[len(root)+1:])
	}
	return out
}
