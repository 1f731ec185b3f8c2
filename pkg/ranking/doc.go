// Package ranking selects the top feature films by Bayesian weighted rating.
package ranking
