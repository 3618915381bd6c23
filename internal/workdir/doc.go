// Package workdir scopes each pipeline run to a locked working directory.
package workdir
