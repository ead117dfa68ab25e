package contacts

import "sort"

const StoreKey = "contacts"

type Contact struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Phone       string `json:"phone"`
	Relation    string `json:"relation,omitempty"`
	IsEmergency bool   `json:"is_emergency"`
	Priority    int    `json:"priority"`
}

// SortByPriority ordena estable: menor Priority primero.
func SortByPriority(list []Contact) {
	sort.SliceStable(list, func(i, j int) bool { return list[i].Priority < list[j].Priority })
}

// Primary es el destino de la llamada de emergencia: el primer contacto de
// emergencia por prioridad, o el primero de la lista. list debe venir ordenada.
func Primary(list []Contact) (Contact, bool) {
	for _, c := range list {
		if c.IsEmergency {
			return c, true
		}
	}
	if len(list) > 0 {
		return list[0], true
	}
	return Contact{}, false
}
