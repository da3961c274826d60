package simpleshare

import "time"

// Key prefixes of the metadata namespace. Password hashes live under a key
// derived from the primary record key, so listings must exclude the
// passwordSuffix when scanning by prefix.
const (
	linkKeyPrefix   = "url:"
	linkListPrefix  = "list:"
	fileKeyPrefix   = "file:"
	textKeyPrefix   = "text:"
	clicksKeyPrefix = "clicks:"

	passwordSuffix = ":password"
)

// Exported prefixes for the admin package's namespace scans.
const (
	LinkKeyPrefix   = linkKeyPrefix
	LinkListPrefix  = linkListPrefix
	FileKeyPrefix   = fileKeyPrefix
	TextKeyPrefix   = textKeyPrefix
	ClicksKeyPrefix = clicksKeyPrefix
	PasswordSuffix  = passwordSuffix
)

func linkKey(code string) string     { return linkKeyPrefix + code }
func linkListKey(id string) string   { return linkListPrefix + id }
func fileKey(id string) string       { return fileKeyPrefix + id }
func filePassKey(id string) string   { return fileKeyPrefix + id + passwordSuffix }
func textKey(id string) string       { return textKeyPrefix + id }
func textPassKey(id string) string   { return textKeyPrefix + id + passwordSuffix }
func fileObjectKey(stored string) string { return "files/" + stored }
func textObjectKey(id string) string { return "text/" + id + ".txt" }

func clicksKey(day time.Time, code string) string {
	return clicksKeyPrefix + day.Format("2006-01-02") + ":" + code
}
