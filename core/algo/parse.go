// Package algo has the pure text parsing and ordering rules behind a commit report.
package algo

import (
	"fmt"
	"strings"
	"time"

	"github.com/huangsam/gitsummary/internal/contract"
	"github.com/huangsam/gitsummary/schema"
)

// mergeMarker starts the parent line of a merge commit in `git show` output.
const mergeMarker = "Merge:"

// ParseRow splits one delimited row into trimmed fields.
// It returns false when the row has fewer than minFields fields.
func ParseRow(row string, minFields int) ([]string, bool) {
	parts := strings.Split(row, schema.FieldDelimiter)
	if len(parts) < minFields {
		return nil, false
	}
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}
	return parts, true
}

// ParseCommitRow turns one log row into a commit record.
// Field 0 is the hash, field 3 the ISO author date, and the last two the author name and email.
// An unparsable date leaves CommitDate zero and logs a warning.
func ParseCommitRow(row string) (schema.CommitRecord, bool) {
	fields, ok := ParseRow(row, schema.MinCommitFields)
	if !ok {
		return schema.CommitRecord{}, false
	}
	commit := schema.CommitRecord{
		Hash:        fields[0],
		AuthorName:  fields[len(fields)-2],
		AuthorEmail: fields[len(fields)-1],
	}
	date, err := time.Parse(time.RFC3339, fields[3])
	if err != nil {
		contract.LogWarn(fmt.Sprintf("Unable to parse date of commit %s", commit.Hash), err)
	} else {
		commit.CommitDate = date
	}
	return commit, true
}

// ParseCommitLog parses every row of a log listing, skipping short rows.
func ParseCommitLog(out []byte) []schema.CommitRecord {
	rows := contract.SplitLines(out)
	commits := make([]schema.CommitRecord, 0, len(rows))
	for _, row := range rows {
		if c, ok := ParseCommitRow(row); ok {
			commits = append(commits, c)
		}
	}
	return commits
}

// ParseParentGraph parses "hash parent..." rows into a hash to parents map.
// Root commits map to an empty slice.
func ParseParentGraph(out []byte) map[string][]string {
	graph := make(map[string][]string)
	for _, row := range contract.SplitLines(out) {
		fields := strings.Fields(row)
		if len(fields) == 0 {
			continue
		}
		parents := make([]string, 0, len(fields)-1)
		parents = append(parents, fields[1:]...)
		graph[fields[0]] = parents
	}
	return graph
}

// ParseDetail extracts the merge parents and the summary line from `git show` text.
//
// Merge parents come from the first line starting with "Merge:" and are kept only
// when it names at least two hashes. The summary is the first non-empty line after
// two consecutive blank lines.
func ParseDetail(text string) (mergeParents string, summary string) {
	lines := strings.Split(strings.ReplaceAll(text, "\r\n", "\n"), "\n")

	mergeSeen := false
	blanks := 0
	for _, line := range lines {
		trimmed := strings.TrimSpace(line)

		if !mergeSeen && strings.HasPrefix(trimmed, mergeMarker) {
			mergeSeen = true
			if hashes := strings.Fields(strings.TrimPrefix(trimmed, mergeMarker)); len(hashes) >= 2 {
				mergeParents = strings.Join(hashes, " ")
			}
		}

		if trimmed == "" {
			blanks++
			continue
		}
		if blanks >= 2 && summary == "" {
			summary = trimmed
		}
		blanks = 0
	}
	return mergeParents, summary
}

// FilterRemoteBranchRefs drops refs whose last path segment is the symbolic HEAD alias.
func FilterRemoteBranchRefs(refs []string) []string {
	out := make([]string, 0, len(refs))
	for _, ref := range refs {
		ref = strings.TrimSpace(ref)
		if ref == "" {
			continue
		}
		segments := strings.Split(ref, "/")
		if segments[len(segments)-1] == schema.SymbolicHead {
			continue
		}
		out = append(out, ref)
	}
	return out
}

// SplitRemoteBranch matches ref against the remote names in order and splits off
// the first remote that prefixes it with a slash. Refs matching no remote, or with
// nothing after the prefix, are not addressable.
func SplitRemoteBranch(ref string, remotes []string) (schema.RemoteBranch, bool) {
	for _, remote := range remotes {
		if remote == "" {
			continue
		}
		prefix := remote + "/"
		if !strings.HasPrefix(ref, prefix) {
			continue
		}
		name := ref[len(prefix):]
		if name == "" {
			return schema.RemoteBranch{}, false
		}
		return schema.RemoteBranch{Remote: remote, Name: name}, true
	}
	return schema.RemoteBranch{}, false
}
