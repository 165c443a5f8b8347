package replay

import (
	"fmt"

	"recomp/internal/backend"
	"recomp/internal/literal"
	"recomp/internal/snapshot"
)

// provisionArguments materializes one engine-resident handle per unbound
// parameter of the executable, in declared parameter order.
//
// The two provisioning paths are mutually exclusive: with synthetic
// inputs the snapshot's recorded arguments are never consulted;
// otherwise every recorded argument is decoded and transferred in order.
func provisionArguments(client backend.Client, exe backend.Executable, snap *snapshot.Snapshot, opts Options) ([]*backend.Handle, error) {
	if opts.UseSyntheticInputs {
		handles, err := backend.MakeFakeArguments(client, exe)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrProvisioning, err)
		}
		return handles, nil
	}

	params := exe.InputShapes()
	if len(snap.Arguments) != len(params) {
		return nil, fmt.Errorf("%w: program %s takes %d parameter(s), snapshot recorded %d argument(s)",
			ErrProvisioning, exe.Name(), len(params), len(snap.Arguments))
	}

	handles := make([]*backend.Handle, 0, len(params))
	for i, rec := range snap.Arguments {
		lit, err := literal.Decode(rec)
		if err != nil {
			return nil, fmt.Errorf("%w: argument %d: %w: %v", ErrProvisioning, i, ErrMalformedArgument, err)
		}
		if !lit.Shape.Equal(params[i]) {
			return nil, fmt.Errorf("%w: argument %d has shape %s, parameter wants %s",
				ErrProvisioning, i, lit.Shape, params[i])
		}
		h, err := client.Transfer(lit)
		if err != nil {
			return nil, fmt.Errorf("%w: argument %d: %v", ErrProvisioning, i, err)
		}
		handles = append(handles, h)
	}

	return handles, nil
}
