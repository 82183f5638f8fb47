package classreg

import (
	"krypt.co/rpc/dispatch"
	"krypt.co/rpc/rpcerr"
	"krypt.co/rpc/variant"
)

// BaseSerialize implements spec.md §4.4's serialize: it walks c's field
// table and reflects each backing Go field into an object(name) Variant.
func BaseSerialize(c *ClassMeta, instance Object) (*variant.Variant, error) {
	fields := make(map[string]*variant.Variant, len(c.fields))
	for _, f := range c.fields {
		fv, err := structField(instance, f)
		if err != nil {
			return nil, err
		}
		encoded, err := dispatch.Encode(fv, f.Type)
		if err != nil {
			return nil, err
		}
		fields[f.Name] = encoded
	}
	return variant.NewObject(fields), nil
}

// BaseDeserialize implements spec.md §4.4's deserialize: every declared
// field must be present and every present field must be declared — an
// unknown field is an error, not silently ignored.
func BaseDeserialize(c *ClassMeta, instance Object, v *variant.Variant) error {
	obj, err := v.Object()
	if err != nil {
		return err
	}
	seen := make(map[string]bool, len(c.fields))
	for _, f := range c.fields {
		child, ok := obj[f.Name]
		if !ok {
			return rpcerr.New(rpcerr.Reflection, "class %q: missing field %q", c.name, f.Name)
		}
		seen[f.Name] = true
		fv, err := structField(instance, f)
		if err != nil {
			return err
		}
		decoded, err := dispatch.Decode(child, f.Type, fv.Type())
		if err != nil {
			return err
		}
		fv.Set(decoded)
	}
	for name := range obj {
		if !seen[name] {
			return rpcerr.New(rpcerr.Reflection, "class %q: unknown field %q", c.name, name)
		}
	}
	return nil
}
