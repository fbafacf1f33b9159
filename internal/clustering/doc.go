// Package clustering groups days by weather and demand with k-means.
//
// Features are z-score standardized before fitting, and centroids are mapped back
// to original units in the result. Seeding uses k-means++ from a math/rand source
// seeded per call, so a given seed, input and k always produce the same labels.
package clustering
