// Package resources serves the dashboard's static assets: embedded in release
// builds, read from disk with the dev build tag.
package resources

// StaticDirectoryPath is the path to static assets from the project root.
const StaticDirectoryPath = "internal/ui/resources/static"

// Stylesheet is the dashboard stylesheet, relative to the static directory.
const Stylesheet = "app.css"
