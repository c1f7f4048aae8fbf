package model

// EmailTemplate is a built-in subject/body pair. Bodies may carry pattern
// tokens that are resolved at send time.
type EmailTemplate struct {
	Name    string `json:"name"`
	Subject string `json:"subject"`
	Body    string `json:"body"`
}

// SMSTemplate is a built-in single-body template for SMS channels.
type SMSTemplate struct {
	Name string `json:"name"`
	Body string `json:"body"`
}

// EmailTemplates is the static email catalog. Not editable at runtime.
var EmailTemplates = []EmailTemplate{
	{
		Name:    "Verification Code",
		Subject: "Your Verification Code",
		Body:    "Your verification code is {random_digit:6}.\n\nThis code expires in 10 minutes.\nDo not share this code with anyone.\n\nIf you didn't request this, please ignore this email.",
	},
	{
		Name:    "OTP Login",
		Subject: "Your One-Time Password",
		Body:    "Your OTP is {random_digit:6}.\n\nUse this code to complete your login.\nExpires in 5 minutes.\n\nIf this wasn't you, secure your account immediately.",
	},
	{
		Name:    "Order Confirmation",
		Subject: "Order Confirmed - #{random_upper:8}",
		Body:    "Thank you for your order!\n\nOrder ID: #{random_upper:8}\nDate: {date}\n\nTrack your order: {link}\n\nThank you for shopping with us!",
	},
	{
		Name:    "Shipping Update",
		Subject: "Your Order Has Shipped",
		Body:    "Great news! Your order is on its way!\n\nTracking Number: {random_upper:12}\nTrack here: {link}\n\nEstimated delivery: 3-5 business days.",
	},
	{
		Name:    "Transaction Alert",
		Subject: "Transaction Notification",
		Body:    "A transaction was made on your account.\n\nAmount: ${random_digit:3}.{random_digit:2}\nDate: {date}\nTime: {time}\n\nIf you didn't make this transaction, secure your account: {link}",
	},
	{
		Name:    "Appointment Reminder",
		Subject: "Appointment Reminder",
		Body:    "This is a reminder for your upcoming appointment.\n\nDate: {date}\n\nPlease arrive 15 minutes early.\n\nNeed to reschedule? Click here: {link}",
	},
	{
		Name:    "Promotional Offer",
		Subject: "Exclusive Offer Inside",
		Body:    "Exclusive offer!\n\nUse code: {random_upper:8}\nGet 20% off your next order!\n\nShop now: {link}\n\nHurry, offer expires soon!",
	},
	{
		Name:    "Password Reset",
		Subject: "Password Reset Request",
		Body:    "We received a request to reset your password.\n\nReset Code: {random_digit:6}\n\nClick here to reset: {link}\n\nThis link expires in 1 hour.\n\nIf you didn't request this, please ignore this email.",
	},
	{
		Name:    "Account Verified",
		Subject: "Account Verified Successfully",
		Body:    "Congratulations! Your account has been verified.\n\nYou now have full access to all features.\n\nGet started: {link}\n\nWelcome aboard!",
	},
	{
		Name:    "Security Alert",
		Subject: "New Login Detected",
		Body:    "A new login was detected on your account.\n\nTime: {time}\nDate: {date}\n\nIf this was you, you can ignore this message.\nIf not, secure your account immediately: {link}",
	},
}

// SMSTemplates is the static SMS catalog.
var SMSTemplates = []SMSTemplate{
	{Name: "Verification Code", Body: "Your verification code is {random_digit:6}. Valid for 10 minutes. Do not share this code."},
	{Name: "OTP Code", Body: "Your OTP is {random_digit:4}. Use this to complete your login. Expires in 5 mins."},
	{Name: "Order Shipped", Body: "Your order has been shipped! Track: {link}"},
	{Name: "Delivery Update", Body: "Your package is out for delivery! Track here: {link}"},
	{Name: "Transaction Alert", Body: "Alert: Transaction of ${random_digit:3}.{random_digit:2} on your account. Review: {link}"},
	{Name: "Reminder", Body: "Reminder: Your appointment is tomorrow. Details: {link}"},
	{Name: "Promo Code", Body: "Special offer! {random_upper:6} for 20% off! Shop: {link}"},
	{Name: "Password Reset", Body: "Reset your password here: {link} Code: {random_digit:6}"},
	{Name: "2FA Code", Body: "Your 2FA code is {random_digit:6}. Expires in 60 sec."},
	{Name: "Account Verified", Body: "Account verified! Get started: {link}"},
	{Name: "Security Alert", Body: "New login detected at {time}. Secure your account: {link}"},
	{Name: "Custom Link Only", Body: "Check this out: {link}"},
}
