// Package nova is a data-oriented Entity-Component-System core: generational
// handles, a parent-child handle forest, per-component-type column storage
// with swap-remove, index tables mapping handles to storage rows, a
// time-ordered message queue, and capability-based system registration.
//
// The package is single-threaded and cooperative. There is no persistence,
// no networking, and no parallel system execution; every callback runs
// synchronously from the stack of Dispatch, Update, or the mutating call
// that triggered it.
package nova
