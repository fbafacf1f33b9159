// Package dashboard assembles overview and exploration views, their insight captions and chart specifications.
package dashboard
