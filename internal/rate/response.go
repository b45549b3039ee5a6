package rate

const defaultDeliveryDays = 20

// Builder turns winning quotes into shipping services. Defaults are
// layered explicitly, lowest precedence first:
//
//	built-in default < merchant default < rule value < request value
type Builder struct {
	Config MerchantConfig
	Params Params
	Origin string
}

func (b Builder) Build(quotes []Quote) []ShippingService {
	out := make([]ShippingService, 0, len(quotes))
	for _, q := range quotes {
		out = append(out, b.service(q))
	}
	return out
}

func (b Builder) service(q Quote) ShippingService {
	code := q.Rule.ServiceCode
	svc, found := findService(b.Config.Services, code)

	label := q.Rule.Label
	if label == "" && found {
		label = svc.Label
	}
	if label == "" {
		label = code
	}

	out := ShippingService{
		ServiceCode: code,
		Label:       label,
		ShippingLine: ShippingLine{
			From:                 b.from(q.Rule),
			To:                   b.Params.To,
			Price:                q.Price,
			TotalPrice:           q.TotalPrice,
			DeliveryTime:         deliveryTime(q.Rule.DeliveryTime),
			PostingDeadline:      postingDeadline(b.Config.PostingDeadline, q.Rule.PostingDeadline),
			DeliveryInstructions: q.Rule.DeliveryInstructions,
		},
	}
	if found {
		out.Carrier = svc.Carrier
		out.FreeShippingAll = svc.FreeShippingAll
		out.ProductIDs = svc.ProductIDs
	}
	return out
}

// from layers the resolved origin zip, the rule origin and the request
// origin, then keeps only the digits of the resulting zip.
func (b Builder) from(r ShippingRule) Address {
	addr := Address{Zip: b.Origin}
	addr = overlayAddress(addr, r.From)
	addr = overlayAddress(addr, b.Params.From)
	addr.Zip = DigitsOnly(addr.Zip)
	return addr
}

func overlayAddress(base Address, top *Address) Address {
	if top == nil {
		return base
	}
	set := func(dst *string, v string) {
		if v != "" {
			*dst = v
		}
	}
	set(&base.Zip, top.Zip)
	set(&base.Name, top.Name)
	set(&base.Street, top.Street)
	set(&base.Complement, top.Complement)
	set(&base.Borough, top.Borough)
	set(&base.City, top.City)
	set(&base.ProvinceCode, top.ProvinceCode)
	set(&base.CountryCode, top.CountryCode)
	if top.Number != nil {
		n := *top.Number
		base.Number = &n
	}
	return base
}

func deliveryTime(rule *DeliveryTime) ShippingLineDeliveryTime {
	dt := ShippingLineDeliveryTime{Days: defaultDeliveryDays, WorkingDays: true}
	if rule == nil {
		return dt
	}
	if rule.Days != nil {
		dt.Days = *rule.Days
	}
	if rule.WorkingDays != nil {
		dt.WorkingDays = *rule.WorkingDays
	}
	return dt
}

func postingDeadline(layers ...*PostingDeadline) ShippingLinePostingDeadline {
	var pd ShippingLinePostingDeadline
	for _, l := range layers {
		if l == nil {
			continue
		}
		if l.Days != nil {
			pd.Days = *l.Days
		}
		if l.WorkingDays != nil {
			v := *l.WorkingDays
			pd.WorkingDays = &v
		}
		if l.AfterApproval != nil {
			v := *l.AfterApproval
			pd.AfterApproval = &v
		}
	}
	return pd
}
