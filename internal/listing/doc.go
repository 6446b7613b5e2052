// Package listing loads the ordered item set that seeds the pipeline.
//
// A listing is either a dictionary of name to locator (the classic photo
// plist shape) or an ordered array of {name, url} entries, encoded as JSON,
// YAML, or an Apple property list. Dictionaries are ordered by name so item
// position keys stay stable across reloads. Sources can be local files or
// http(s) URLs, and local files can be watched for changes.
package listing
