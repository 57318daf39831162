package config

const (
	defaultSubmissionLevel      = 1
	defaultSizeTolerance        = 10
	defaultMaxExtractBytes      = 1 << 30
	defaultEmailReplacement     = "anon@mtroyal.ca"
	defaultStudentIDReplacement = "00000000"
	defaultLogFormat            = "console"
	defaultLogLevel             = "info"
)

func defaultExclude() []string {
	return []string{
		"lib", "bin", "build", "dist",
		"junit", "hamcrest", "checkstyle", "gson",
		"_macosx", ".ds_store", ".git", ".idea", ".vscode", "meta-inf",
	}
}

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Scan: Scan{
			SubmissionLevel:   defaultSubmissionLevel,
			Exclude:           defaultExclude(),
			SourceExtensions:  []string{".java"},
			ArchiveExtensions: []string{".jar", ".zip"},
			SizeTolerance:     defaultSizeTolerance,
			MaxExtractBytes:   defaultMaxExtractBytes,
		},
		Redaction: Redaction{
			Entities:             []string{"email", "student_id"},
			EmailReplacement:     defaultEmailReplacement,
			StudentIDReplacement: defaultStudentIDReplacement,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
