/*
Package convert translates between the abstract behavior tree and the graphical scene.

BuildTreeFromScene never fails: it returns a best-effort tree for any scene, so partial
trees can be inspected while editing. Rejecting malformed shapes is the job of the
validator and the save path. BuildSceneFromTree stages all node and edge creation under a
single signal-blocked scope so that exactly one change notification is observed.
*/
package convert
