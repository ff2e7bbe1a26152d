package models

// SourceFile is an indexed file of a project's repository.
type SourceFile struct {
	ID        string `json:"id"`
	ProjectID string `json:"projectId"`
	Path      string `json:"path"`
	Language  string `json:"language"`
	Size      int64  `json:"size"`
}

// CodeEntity is a declaration extracted from a source file. Summary is the
// text that gets embedded for retrieval.
type CodeEntity struct {
	ID        string    `json:"id"`
	ProjectID string    `json:"projectId"`
	FilePath  string    `json:"filePath"`
	Kind      string    `json:"kind"` // function, method, class, interface, type
	Name      string    `json:"name"`
	Summary   string    `json:"summary"`
	StartLine int       `json:"startLine"`
	EndLine   int       `json:"endLine"`
	Embedding []float32 `json:"-"`
}

// IndexResult is what one indexing run produced for a project.
type IndexResult struct {
	ProjectID      string
	FilesProcessed int
	EntitiesFound  int
	Errors         []string
	Files          []*SourceFile
	Entities       []CodeEntity
}

// Language detection by extension
var LanguageByExtension = map[string]string{
	".go":   "go",
	".py":   "python",
	".ts":   "typescript",
	".tsx":  "typescript",
	".js":   "javascript",
	".jsx":  "javascript",
	".java": "java",
	".kt":   "kotlin",
	".kts":  "kotlin",
}

func DetectLanguage(path string) string {
	for ext, lang := range LanguageByExtension {
		if len(path) > len(ext) && path[len(path)-len(ext):] == ext {
			return lang
		}
	}
	return ""
}
