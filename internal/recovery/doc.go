// Package recovery is the closed error taxonomy of the search animation.
//
// Every failure reported while a run is in flight is classified into one [models.ErrorKind] by
// [Classify]; anything unrecognized becomes [models.ErrorUnknown], so no failure is dropped. Each kind
// has a fixed [Policy] naming the stage it belongs to, the message shown to the user, whether retrying
// makes sense, and the recovery actions on offer. [Resolve] maps an action id to the controller
// operation or navigation it stands for.
package recovery
