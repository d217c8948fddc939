package utils

import "regexp"

var (
	passwordPattern = regexp.MustCompile(`(?i)(password|pwd)=[^ ]*`)
	userinfoPattern = regexp.MustCompile(`://([^:/@]+):([^@/]*)@`)
)

// RedactDSN masks password material in a libpq-style or URI-style
// connection string so that DSNs can be safely included in log lines and
// wrapped errors.
func RedactDSN(dsn string) string {
	dsn = passwordPattern.ReplaceAllString(dsn, "$1=***")
	dsn = userinfoPattern.ReplaceAllString(dsn, "://$1:***@")
	return dsn
}
