package nav

// WeightStep is the increment between consecutive weights at every level.
const WeightStep = 10

// DocumentExtension is the extension of documents referenced by the nav.
const DocumentExtension = ".md"

// File is the metadata of one navigable document.
// Section and Subsection are empty when the document has none.
type File struct {
	Title      string
	Section    string
	Subsection string
	Weight     int
}

// FileMetadata maps slash-separated document paths (relative to the docs root) to
// their metadata.
type FileMetadata map[string]File

// MaxWeight returns the largest weight in m, or 0 when m is empty.
func (m FileMetadata) MaxWeight() int {
	maxWeight := 0
	for _, f := range m {
		if f.Weight > maxWeight {
			maxWeight = f.Weight
		}
	}
	return maxWeight
}

// Section is the metadata written to a directory's index document.
type Section struct {
	Title  string
	Weight int
}

// SectionMetadata maps slash-separated directory paths to section metadata.
// The first leaf seen under a directory decides its entry.
type SectionMetadata map[string]Section
