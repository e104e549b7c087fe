// Package fileselect decides which files of a source tree belong to a
// snapshot and copies them.
//
// A RuleSet is an ordered list of include/exclude Rules. For any path the
// last rule that applies decides; when none applies the path is excluded.
// Directory-typed rules are consulted before a directory is entered and an
// exclusion prunes the whole subtree. Rules with a match cap are stateful,
// so evaluation happens through a Session, which owns the per-rule match
// counters for exactly one walk.
//
// CopyTree walks a tree depth-first in name order and reports each file to
// a Handler as copied or ignored. The default CopyHandler mirrors selected
// files under a destination directory.
package fileselect
