package responder

import "github.com/maravaman/intent-orchestra-nexus/core"

// Stock responder IDs.
const (
	ScenicID  = "scenic"
	RiverID   = "river"
	ParkID    = "park"
	HistoryID = "history"
)

// Definitions returns the descriptors for the four stock responders.
// These are configuration data only; behavior lives in the implementations.
func Definitions() []core.ResponderDescriptor {
	return []core.ResponderDescriptor{
		{
			ID:          ScenicID,
			Name:        "Scenic Guide",
			TopicType:   "scenic",
			Description: "Viewpoints, landscapes, and photo-worthy locations.",
			Capabilities: []string{
				"viewpoint recommendations",
				"seasonal scenery advice",
			},
			Keywords: []string{
				"scenic", "view", "viewpoint", "mountain", "valley",
				"landscape", "sunset", "sunrise", "vista", "overlook", "beautiful",
			},
			Priority: 1,
			Enabled:  true,
		},
		{
			ID:          RiverID,
			Name:        "River Guide",
			TopicType:   "river",
			Description: "Rivers, lakes, waterfalls, and everything on the water.",
			Capabilities: []string{
				"flow and season advice",
				"paddling and fishing spots",
			},
			Keywords: []string{
				"river", "stream", "creek", "rapids", "waterfall",
				"lake", "water", "fishing", "kayak", "raft",
			},
			Priority: 2,
			Enabled:  true,
		},
		{
			ID:          ParkID,
			Name:        "Park Guide",
			TopicType:   "park",
			Description: "Parks, trails, camping, and wildlife.",
			Capabilities: []string{
				"trail recommendations",
				"camping and permit basics",
			},
			Keywords: []string{
				"park", "trail", "hike", "hiking", "camping", "campground",
				"wildlife", "forest", "reserve", "sanctuary", "picnic",
			},
			Priority: 3,
			Enabled:  true,
		},
		{
			ID:          HistoryID,
			Name:        "Memory Search",
			TopicType:   "history",
			Description: "Looks back through past conversations and memories.",
			Capabilities: []string{
				"past-conversation search",
				"history summaries",
			},
			Keywords: []string{
				"past", "history", "previous", "remember",
				"before", "earlier", "search", "find",
			},
			Priority: 10,
			Enabled:  true,
		},
	}
}

func definitionByID(id string) core.ResponderDescriptor {
	for _, d := range Definitions() {
		if d.ID == id {
			return d
		}
	}
	return core.ResponderDescriptor{}
}
