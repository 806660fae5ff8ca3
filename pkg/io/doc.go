// Package io reads and writes the inputs of a code city.
//
// Two formats describe a tree:
//
//   - A commit-count CSV with a header line followed by count,path,loc rows.
//     Extra columns are ignored. Rows with fewer than three fields, an empty
//     path, or a non-numeric count or loc are dropped and tallied in
//     [CSVStats].
//
//   - A nested JSON tree literal, where directories carry childDirectories
//     and childFiles arrays and files carry loc and count:
//
//     {
//     "name": "root",
//     "fullPath": "",
//     "childDirectories": [
//     {"name": "a", "fullPath": "a", "childDirectories": [], "childFiles": [
//     {"name": "b.txt", "fullPath": "a/b.txt", "loc": 10, "count": 5}
//     ]}
//     ],
//     "childFiles": [{"name": "d.txt", "fullPath": "d.txt", "loc": 5, "count": 1}]
//     }
//
// Directory metrics in the literal are ignored and recomputed from the
// files. [SelectSubtree] re-roots a decoded document with a JSONPath
// expression before it is turned into a tree.
//
// [Scan] builds records straight from a checkout, counting lines per file
// and, optionally, commits per file from git history.
//
// [Fetch] resolves any of these sources (file, directory, stdin, or URL)
// into a tree. Fetch failures are returned as [errors.ErrCodeFetchFailed]
// or [errors.ErrCodeFileNotFound]; nothing is built from a partial read.
//
// [errors.ErrCodeFetchFailed]: github.com/matzehuels/codecity/pkg/errors.ErrCodeFetchFailed
// [errors.ErrCodeFileNotFound]: github.com/matzehuels/codecity/pkg/errors.ErrCodeFileNotFound
package io
