package config

// DefaultPatterns is the built-in curated pattern set, used whenever
// no pattern file is configured or the configured file is missing.
// Order is significant within each table: the first match wins.
func DefaultPatterns() *Compiled {
	return LoadPatterns(PatternTables{
		Forbidden: defaultForbidden,
		Dangerous: defaultDangerous,
		Injection: defaultInjection,
	})
}

var defaultForbidden = []PatternEntry{
	{
		Pattern: `(?i)\b(cat|less|more|head|tail|ls|vim|nano|strings|cp|mv|tar|rm)\b[^|;&]*(/run/secrets(/|\b)|/proc/(self|[0-9]+)/environ\b|(~|\$HOME)?/\.ssh(/|\b))`,
		Reason:  "Secret path read",
	},
	{
		Pattern: `(?i)\b(cat|less|more|head|tail|strings|cp|mv|tar)\b[^|;&]*/etc/(passwd|shadow|hosts)\b`,
		Reason:  "System file read",
	},
	{
		Pattern: `(?i)\b(cat|less|more|head|tail|strings|cp|mv|tar)\b[^|;&]*(\.env\b|\.npmrc\b|\.netrc\b|credentials\.json\b)`,
		Reason:  "Credential or dotfile read",
	},
	{
		Pattern: `(?i)\b(python3?|node|ruby|perl|php)\b\s+-[ce]\b.*(os\.environ|process\.env|ENV\[|getenv)`,
		Reason:  "Environment dump via interpreter",
	},
	{
		Pattern: `(?i)^\s*(env|printenv|export|set)\s*$`,
		Reason:  "Environment inspection",
	},
	{
		Pattern: `(?i)\b(curl|wget)\b[^|;&]*://(proxy|gateway|core|bot|tools-api|userbot|localhost|127\.0\.0\.1|0\.0\.0\.0|169\.254\.169\.254)(:[0-9]+)?(/|\b)`,
		Reason:  "Internal service contact",
	},
	{
		Pattern: `(?i)(\|\s*(base64|xxd|hexdump|od|openssl\s+enc)\b)|(\b(base64|xxd|hexdump|od)\b\s+[^|;&]*(\.env\b|/run/secrets|\.ssh|\.pem\b|\.key\b|credentials\.json))`,
		Reason:  "Encoding pipeline for exfiltration",
	},
	{
		Pattern: `(?i)\becho\b[^|;&]*\$\{?(TELEGRAM_TOKEN|BOT_TOKEN|API_KEY|OPENAI_API_KEY|ANTHROPIC_API_KEY|DATABASE_URL|SECRET[A-Z_]*|AWS_SECRET_ACCESS_KEY)\b`,
		Reason:  "Secret variable echo",
	},
	{
		Pattern: `(?i)\bnpx\b\s+(--yes\s+)?(test-json-env|env-dump)\b`,
		Reason:  "Malicious package runner invocation",
	},
}

var defaultDangerous = []PatternEntry{
	{
		Pattern:     `(?i)\brm\b\s+(-[a-zA-Z]*r[a-zA-Z]*f[a-zA-Z]*|-[a-zA-Z]*f[a-zA-Z]*r[a-zA-Z]*)\b`,
		Reason:      "Force recursive delete",
		GroupStrict: true,
	},
	{
		Pattern: `(?i)^\s*(sudo|doas)\b|^\s*su\s+-`,
		Reason:  "Root privileges",
	},
	{
		Pattern:     `\(\)\s*\{[^}]*:\|:[^}]*\}`,
		Reason:      "Fork bomb",
		GroupStrict: true,
	},
	{
		Pattern:     `(?i)\bchmod\b\s+(-R\s+)?0?777\b|\bchown\b\s+-R\b`,
		Reason:      "Dangerous permission change",
		GroupStrict: true,
	},
	{
		Pattern: `(?i)\bsystemctl\b\s+(stop|disable|mask)\b`,
		Reason:  "System service modification",
	},
	{
		Pattern: `(?i)\biptables\b\s+-F\b|\bufw\b\s+disable\b`,
		Reason:  "Firewall protection disabled",
	},
	{
		Pattern: `(?i)\bapt(-get)?\b\s+(remove|purge)\b.*-y\b|\bapt(-get)?\b\s+(remove|purge)\b\s+-y\b`,
		Reason:  "Unattended package removal",
	},
	{
		Pattern: `(?i)\bdd\b\s+.*of=/dev/|\bmkfs\b|:>\s*/`,
		Reason:  "Data destruction",
	},
	{
		Pattern:     `(?i)\bkill\b\s+(-9\s+)?1\b|\bshutdown\b|\breboot\b|\bhalt\b`,
		Reason:      "Process or system control",
		GroupStrict: true,
	},
	{
		Pattern: `(?i)\b(curl|wget)\b.*\|\s*(sh|bash|zsh)\b`,
		Reason:  "Pipe-to-shell download",
	},
	{
		Pattern: `(?i)\bgit\b\s+push\b.*(--force|-f)\b|\bgit\b\s+reset\b\s+--hard\b|\bgit\b\s+filter-branch\b`,
		Reason:  "History-rewriting VCS operation",
	},
	{
		Pattern: `(?i)\b(DROP\s+TABLE|TRUNCATE(\s+TABLE)?|DELETE\s+FROM\s+\S+\s*;?\s*$)\b`,
		Reason:  "Destructive SQL operation",
	},
	{
		Pattern: `(?i)\bunset\b\s+PATH\b|\bexport\b\s+PATH=\s*$`,
		Reason:  "Critical environment mutation",
	},
	{
		Pattern: `(?i)\bwhile\s+(true|:)\s*;?\s*do\b`,
		Reason:  "Unbounded loop",
	},
}

var defaultInjection = []PatternEntry{
	{Pattern: `(?i)\bignore\s+(all\s+)?(previous|prior|above)\s+instructions\b`, Reason: "Role-escape directive"},
	{Pattern: `(?i)\bforget\s+(all\s+)?(previous|prior|your)\s+instructions\b`, Reason: "Role-escape directive"},
	{Pattern: `(?i)\bdisregard\s+(all\s+)?(previous|prior|above)\s+instructions\b`, Reason: "Role-escape directive"},
	{Pattern: `(?i)ignora\s+(todas\s+)?las\s+instrucciones\s+anteriores`, Reason: "Role-escape directive (es)"},
	{Pattern: `(?i)ignore\s+les\s+instructions\s+précédentes`, Reason: "Role-escape directive (fr)"},
	{Pattern: `(?i)\byou\s+are\s+now\s+(in\s+)?(DAN|developer)\s+mode\b`, Reason: "Known jailbreak token"},
	{Pattern: `(?i)\bdo\s+anything\s+now\b`, Reason: "Known jailbreak token"},
	{Pattern: `(?i)\bjailbreak\b`, Reason: "Known jailbreak token"},
	{Pattern: `(?i)\[\s*(system|admin|developer)\s*\]`, Reason: "Bracketed role tag"},
	{Pattern: `(?i)\bact\s+as\s+(if\s+you\s+have\s+)?no\s+(content\s+)?restrictions\b`, Reason: "Role-escape directive"},
	{Pattern: `(?i)\breveal\s+your\s+(system\s+)?prompt\b`, Reason: "Prompt exfiltration attempt"},
}
