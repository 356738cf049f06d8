package entity

// Role es la enumeración cerrada de roles con orden total:
// regular < cashier < manager < superuser. Los endpoints declaran un rol
// mínimo, no una coincidencia exacta.
type Role int

const (
	RoleRegular Role = iota
	RoleCashier
	RoleManager
	RoleSuperuser
)

// roleNames nombre canónico de cada rol (también el valor persistido y el del claim JWT).
var roleNames = [...]string{"regular", "cashier", "manager", "superuser"}

// String devuelve el nombre canónico del rol.
func (r Role) String() string {
	if r < RoleRegular || r > RoleSuperuser {
		return "unknown"
	}
	return roleNames[r]
}

// Valid indica si el valor pertenece a la enumeración.
func (r Role) Valid() bool {
	return r >= RoleRegular && r <= RoleSuperuser
}

// AtLeast compara contra un rol mínimo según el orden total.
func (r Role) AtLeast(min Role) bool {
	return r >= min
}

// ParseRole convierte un nombre a Role. ok es false si el nombre no existe.
func ParseRole(s string) (Role, bool) {
	for i, name := range roleNames {
		if name == s {
			return Role(i), true
		}
	}
	return RoleRegular, false
}
