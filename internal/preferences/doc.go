// Package preferences manages the user's starred venues.
//
// Starred venues are a per-user curation layer on top of the venue list: the
// calendar can be narrowed to them and listings mark them. Preferences are loaded
// once per command and saved explicitly through a Storage. FileStorage keeps them
// as JSON in the data directory.
package preferences
