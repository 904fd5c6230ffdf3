// Package preflight provides readiness checks for the external tools and
// filesystem paths the alignment pipeline depends on.
//
// The CLI "readalong status" command runs these checks to display tool and
// directory health before the user commits to a long alignment run.
package preflight
