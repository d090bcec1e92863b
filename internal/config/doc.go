// Package config loads runtime settings and the venue list.
//
// Settings come from MUSICLIST_* environment variables, optionally seeded from a
// .env file in the working directory. The venue list is read from a YAML file;
// when no file exists the built-in venues are used. Relative file names resolve
// against the data directory and a leading ~/ expands to the home directory.
//
// Example venues.yaml:
//
//	venues:
//	  - name: The Warfield
//	    base_url: https://www.thewarfieldtheatre.com
//	    calendar_path: /events/
//	    parser: warfield
//	    enabled: true
package config
