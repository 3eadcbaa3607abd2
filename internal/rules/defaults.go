package rules

// DefaultRules returns the built-in rule vocabulary
func DefaultRules() []Rule {
	return []Rule{
		{
			Category: "temporary",
			Patterns: []string{`\.(tmp|temp|bak|swp|part|crdownload)$`, "~$", "thumbs.db", ".ds_store"},
			Tags:     []string{"temporary"},
		},
		{
			Category: "backup",
			Patterns: []string{"backup", `\.(old|orig)$`, `\.bak\d+$`},
			Tags:     []string{"backup"},
		},
		{
			Category: "config",
			Patterns: []string{`\.(ini|cfg|conf|ya?ml|toml|env|properties)$`},
			Tags:     []string{"config"},
		},
		{
			Category: "code",
			Patterns: []string{`\.(go|py|js|ts|java|c|cpp|h|rs|rb|php|sh|cs|kt|swift)$`},
			Tags:     []string{"code"},
		},
		{
			Category: "archive",
			Patterns: []string{`\.(zip|rar|7z|tar|gz|tgz|bz2|xz)$`},
			Tags:     []string{"archive"},
		},
		{
			Category: "project",
			Patterns: []string{"readme", "license", "makefile", "dockerfile", "go.mod", "package.json"},
			Tags:     []string{"project"},
		},
		{
			Category: "report",
			Patterns: []string{"report", "invoice", "statement", `\b(q[1-4]|fy)[-_]?\d{2,4}\b`},
			Tags:     []string{"report"},
		},
	}
}
