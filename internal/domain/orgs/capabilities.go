package orgs

// Capability es un permiso booleano de la membresía.
type Capability uint8

const (
	CanDeleteClients Capability = 1 << iota
	CanDeleteAnimals
	CanDeleteTreatments
	CanViewActivityLog
)

// AllCapabilities es lo que el OWNER tiene implícitamente.
const AllCapabilities = Capabilities(CanDeleteClients | CanDeleteAnimals | CanDeleteTreatments | CanViewActivityLog)

var capabilityNames = []struct {
	c    Capability
	name string
}{
	{CanDeleteClients, "canDeleteClients"},
	{CanDeleteAnimals, "canDeleteAnimals"},
	{CanDeleteTreatments, "canDeleteTreatments"},
	{CanViewActivityLog, "canViewActivityLog"},
}

func (c Capability) String() string {
	for _, n := range capabilityNames {
		if n.c == c {
			return n.name
		}
	}
	return "unknown"
}

// Capabilities es el conjunto de flags de una membresía.
type Capabilities uint8

func NewCapabilities(cs ...Capability) Capabilities {
	var out Capabilities
	for _, c := range cs {
		out |= Capabilities(c)
	}
	return out
}

func (s Capabilities) Has(c Capability) bool { return s&Capabilities(c) != 0 }

func (s Capabilities) With(c Capability) Capabilities { return s | Capabilities(c) }

func (s Capabilities) Without(c Capability) Capabilities { return s &^ Capabilities(c) }

// Flags expone el conjunto como el mapa de booleans que ve la API.
func (s Capabilities) Flags() map[string]bool {
	out := make(map[string]bool, len(capabilityNames))
	for _, n := range capabilityNames {
		out[n.name] = s.Has(n.c)
	}
	return out
}

// CapabilityPatch aplica cambios parciales: nil = no tocar.
type CapabilityPatch struct {
	CanDeleteClients    *bool `json:"canDeleteClients"`
	CanDeleteAnimals    *bool `json:"canDeleteAnimals"`
	CanDeleteTreatments *bool `json:"canDeleteTreatments"`
	CanViewActivityLog  *bool `json:"canViewActivityLog"`
}

func (p CapabilityPatch) Empty() bool {
	return p.CanDeleteClients == nil && p.CanDeleteAnimals == nil &&
		p.CanDeleteTreatments == nil && p.CanViewActivityLog == nil
}

func (p CapabilityPatch) Apply(s Capabilities) Capabilities {
	set := func(v *bool, c Capability) {
		if v == nil {
			return
		}
		if *v {
			s = s.With(c)
		} else {
			s = s.Without(c)
		}
	}
	set(p.CanDeleteClients, CanDeleteClients)
	set(p.CanDeleteAnimals, CanDeleteAnimals)
	set(p.CanDeleteTreatments, CanDeleteTreatments)
	set(p.CanViewActivityLog, CanViewActivityLog)
	return s
}
