/*
Package mebel provides an admin console for a furniture inventory backend.

Mebel talks to the furniture REST API and covers the day-to-day work of a
store administrator:
  - Signing in and keeping the bearer session between invocations
  - Listing, searching, filtering, sorting and paging products and users
  - Creating and updating products and users, including image uploads
  - Toggling product and user status and adjusting stock
  - Browsing the public furniture catalog and product details

# Configuration

Mebel reads a YAML configuration file (.mebel.yaml) that selects the backend
URL, the data mode (live or mock), the session file and per-view list
defaults. Environment variables are expanded in the file and a local .env file
is honoured.

# Usage

Basic usage:

	mebel login --email admin@mebel.id   # Start a session
	mebel products list --search meja    # List matching products
	mebel products browse                # Page through products interactively
	mebel users status 7 nonaktif        # Deactivate a user
	mebel catalog show 3                 # Show a catalog product
	mebel serve-mock                     # Run the in-memory development backend
*/
package mebel

// Version is the current version of Mebel
const Version = "0.4.0"

// BuildDate is set at build time
var BuildDate string

// GitCommit is set at build time
var GitCommit string
