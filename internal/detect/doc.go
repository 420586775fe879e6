// Package detect finds the SightMap widget in a rendered HTML document.
//
// The widget is embedded as an iframe whose src starts with the SightMap
// embed endpoint. When the src also carries the "?enable" query the site
// drives the map through the SightMap API, which is recorded as APIUsage.
//
// Detection is a pure function of the document: it never fetches anything
// and never follows the iframe.
package detect
