// Package actor defines the on-stage entities of a project: sprites, the
// stage, and the class declarations they are built from.
//
// A Class is the static declaration of a sprite or stage variant: its name
// and its ordered costume, backdrop and sound tables. Instances are created
// from a class and carry the mutable state (position, size, visibility,
// appearance and user variables). A Sprite's identity is its pointer; two
// sprites with equal fields are still distinct entities.
//
// Sprites talk to their owning project only through the Project interface.
// The reference a sprite holds is non-owning: the project decides which
// instances exist, and a sprite that has been unregistered has no project.
package actor
