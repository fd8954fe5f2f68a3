package prompt

// Context document names looked up by the retrieval path.
const (
	SampleDoc      = "sample.md"
	GrammarDoc     = "grammar.tem.md"
	PackageJSONDoc = "package.json"
)

// EmbeddingQuery builds the text embedded to search the corpus. Grammar
// requests use the sample; model requests need both the grammar and the
// package descriptor. Other request types do not retrieve and get "".
func EmbeddingQuery(docs Documents, rt RequestType) (string, error) {
	switch rt {
	case Grammar:
		sample, _ := docs.Find(SampleDoc)
		return sample.Content, nil
	case Model:
		grammar, ok := docs.Find(GrammarDoc)
		if !ok {
			return "", &MissingDocumentError{Name: GrammarDoc, RequestType: rt}
		}
		pkg, ok := docs.Find(PackageJSONDoc)
		if !ok {
			return "", &MissingDocumentError{Name: PackageJSONDoc, RequestType: rt}
		}
		return grammar.Content + " " + pkg.Content, nil
	default:
		return "", nil
	}
}
