// Package challenge manages the catalogue of robot challenges.
//
// The challenge package handles:
//   - Loading challenges from a directory of JSON and HCL files
//   - Validating every map before it enters the catalogue
//   - Name uniqueness for challenges created at runtime
//   - Writing new challenges back to disk
//
// File Formats:
//
// A JSON file holds one challenge:
//
//	{
//	  "name": "corridor",
//	  "description": "Straight to the point",
//	  "layout": ["so2d2f"]
//	}
//
// An HCL file may declare several:
//
//	challenge "warehouse" {
//	  author = "ops"
//	  layout = [
//	    "so2",
//	    "22d",
//	    "22f",
//	  ]
//	}
//
// Usage:
//
//	manager, err := challenge.NewManager("challenges", challenge.Options{Logger: logger})
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	c, err := manager.Get("warehouse")
//	board, err := c.NewBoard()
package challenge
