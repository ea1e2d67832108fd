// Package harness runs scripted pytch projects for tests and the CLI.
//
// The harness compiles a CUE manifest, registers its classes with a fresh
// project, attaches scripted hooks, drives sprites and a scripted micro:bit
// through a list of steps, and checks the final state.
//
// # Scenario Format
//
// Scenarios are defined in YAML files with the following structure:
//
//	name: pong_serve
//	description: "Serving clones the ball and moves the clone"
//	manifest: |
//	  sprite: Ball: costumes: [{name: "ball", asset: "ball.png", width: 10, height: 10}]
//	protocol: v2
//	device:
//	  - op: show_text
//	    args: ["go"]
//	variables:
//	  buttons: ["True", "False", "False"]
//	hooks:
//	  - sprite: Ball
//	    when: clone_start
//	    steps:
//	      - op: change_x
//	        args: { dx: 10 }
//	steps:
//	  - op: clone
//	    sprite: Ball
//	  - op: device.show_text
//	    args: { text: "go" }
//	assertions:
//	  - type: instance_count
//	    sprite: Ball
//	    count: 2
//	  - type: position
//	    sprite: Ball
//	    instance: 1
//	    x: 10
//	    y: 0
//
// # Ops
//
// Sprite ops act on the instance named by sprite and instance, or inside a
// hook on the instance the hook fired on: go_to_xy, set_x, change_x, set_y,
// change_y, set_size, show, hide, switch_costume, set_var, clone,
// delete_clone, touching and click. clone_class clones a class's instance
// zero. switch_backdrop and click_stage act on the stage.
//
// Event ops queue an event: green_flag, broadcast, press_key and the
// simulated device inputs device.button, device.gesture, device.pin_high
// and device.sound_heard.
//
// Device ops send micro:bit commands: device.clear_display,
// device.scroll_message, device.show_text, device.set_pin, device.set_pixel,
// device.show_image, device.play_music, device.stop_music,
// device.enable_radio, device.send_message, and device.get to read a
// variable.
//
// # Assertion Types
//
//   - instance_count: Number of live instances of a sprite class
//   - position: x and y of one instance
//   - shown: Visibility of one instance
//   - appearance: Current costume of one instance
//   - var: A user variable of one instance
//   - device_calls: Exact list of device requests
//
// # Deterministic Testing
//
// Instance IDs come from project.SequentialGenerator and sequence numbers
// from testutil.DeterministicClock, so the same scenario always produces
// the same trace. RunWithGolden compares that trace against
// testdata/golden/{name}.golden using goldie.
package harness
