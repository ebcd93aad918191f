package types

// ResolveFailureType discriminates why a path could not be resolved.
type ResolveFailureType string

const (
	FailureNotFound  ResolveFailureType = "not_found"
	FailureAmbiguous ResolveFailureType = "ambiguous"
)

// Resolution is the closed union PathResolveResult = Success | Failure,
// returned as one struct with a discriminant so callers never need to
// type-switch across package boundaries.
type Resolution struct {
	Ok bool

	// Success fields.
	ResolvedPath   string
	RelativePath   string
	AutoResolved   bool
	OriginalInput  string

	// Failure fields.
	FailureType       ResolveFailureType
	SearchedDirectory string
	AvailablePaths    []string
	Suggestions       []string
}

// Success builds an Ok resolution.
func Success(resolvedPath, relativePath string, autoResolved bool, originalInput string) Resolution {
	return Resolution{
		Ok:            true,
		ResolvedPath:  resolvedPath,
		RelativePath:  relativePath,
		AutoResolved:  autoResolved,
		OriginalInput: originalInput,
	}
}

// NotFound builds a not_found failure.
func NotFound(searchedDirectory string, suggestions []string) Resolution {
	return Resolution{
		Ok:                false,
		FailureType:       FailureNotFound,
		SearchedDirectory: searchedDirectory,
		Suggestions:       suggestions,
	}
}

// Ambiguous builds an ambiguous failure.
func Ambiguous(candidates []string) Resolution {
	return Resolution{
		Ok:             false,
		FailureType:    FailureAmbiguous,
		AvailablePaths: candidates,
		Suggestions:    candidates,
	}
}
