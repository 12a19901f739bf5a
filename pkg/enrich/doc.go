// Package enrich selects the geo-tagged posts of a search page and resolves
// their place and media references against the page includes.
package enrich
