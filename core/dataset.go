package core

import (
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/huangsam/pilotkpi/schema"
)

// datasetNamespace scopes dataset identifiers to this tool.
var datasetNamespace = uuid.NewSHA1(uuid.NameSpaceURL, []byte("https://github.com/huangsam/pilotkpi/dataset"))

// DatasetID returns a UUIDv5 over the canonical form of the records, so the
// same rows in any order and from any source format share an identifier.
func DatasetID(records []schema.RawActivityRecord) string {
	lines := make([]string, 0, len(records))
	for _, r := range records {
		lines = append(lines, canonicalRecord(r))
	}
	slices.Sort(lines)
	return uuid.NewSHA1(datasetNamespace, []byte(strings.Join(lines, "\n"))).String()
}

func canonicalRecord(r schema.RawActivityRecord) string {
	ts := ""
	if !r.Timestamp.IsZero() {
		ts = r.Timestamp.UTC().Format(time.RFC3339)
	}
	return fmt.Sprintf("%s\t%s\t%s\t%t\t%d\t%d\t%d",
		r.TicketID, ts, r.Author, r.Pilot, r.FilesChanged, r.LinesChanged, r.QAChurn)
}
