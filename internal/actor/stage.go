package actor

// Stage is the backdrop actor. It is always shown, sits at the origin at
// natural size, and only its backdrop can change.
type Stage struct {
	class      *Class
	appearance string
}

// Class returns the stage's class.
func (st *Stage) Class() *Class { return st.class }

// Kind returns KindStage.
func (st *Stage) Kind() Kind { return KindStage }

// X is always 0.
func (st *Stage) X() float64 { return 0 }

// Y is always 0.
func (st *Stage) Y() float64 { return 0 }

// Size is always 1.0.
func (st *Stage) Size() float64 { return 1.0 }

// Shown is always true.
func (st *Stage) Shown() bool { return true }

// Appearance returns the current backdrop name.
func (st *Stage) Appearance() string { return st.appearance }

// SwitchBackdrop sets the current backdrop name.
func (st *Stage) SwitchBackdrop(name string) { st.appearance = name }
