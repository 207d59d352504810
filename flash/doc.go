// Package flash provides the bounds-checked storage gateway for the
// application region. All update-session writes and erases pass through it;
// nothing else in the core writes to storage.
package flash
