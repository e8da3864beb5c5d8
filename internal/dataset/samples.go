package dataset

import (
	"github.com/mikey/phish-detector/internal/core"
)

// SampleDataset returns the bundled training set: 20 phishing and 20
// legitimate emails. It is meant for demos; real deployments should train on
// a larger CSV.
func SampleDataset() []core.LabeledSample {
	samples := make([]core.LabeledSample, 0, len(phishingSamples)+len(legitimateSamples))
	for _, text := range phishingSamples {
		samples = append(samples, core.LabeledSample{Text: text, Label: 1})
	}
	for _, text := range legitimateSamples {
		samples = append(samples, core.LabeledSample{Text: text, Label: 0})
	}
	return samples
}

var phishingSamples = []string{
	"URGENT: Your account has been compromised! Click here immediately to verify your identity and secure your account. Enter your password now.",
	"Congratulations! You've won $1,000,000 in the lottery. Click the link to claim your prize. Provide your bank details for transfer.",
	"Dear Customer, Your PayPal account has been limited. Please verify your information by clicking the link below to restore access.",
	"WARNING: Unusual activity detected on your bank account. Click here to confirm your identity or your account will be suspended.",
	"You have received a secure document. Click here to view it. Enter your email password to access.",
	"Your Apple ID was used to sign in to iCloud. If this wasn't you, click here immediately to secure your account.",
	"Final Notice: Your account will be closed in 24 hours unless you verify your information now. Click here to avoid suspension.",
	"Dear valued customer, we detected unauthorized access to your account. Verify your credentials immediately.",
	"You have been selected for a special promotion! Claim your free iPhone by clicking this link and entering your details.",
	"ALERT: Your Netflix subscription has expired. Update your payment information now to continue watching.",
	"Urgent security update required for your Microsoft account. Click here and enter your password to proceed.",
	"Your Amazon order #12345 cannot be delivered. Click here to update your shipping address and payment method.",
	"IMPORTANT: Tax refund of $3,500 available. Click here to claim before deadline. Enter your SSN to verify.",
	"Your Facebook account has been reported for violation. Verify your identity or face permanent suspension.",
	"Exclusive offer: Get rich quick with our investment program. Send money now and double your earnings!",
	"Dear user, your email storage is full. Click here to upgrade and enter your login credentials.",
	"You have a pending inheritance of $5 million. Reply with your bank details to process the transfer.",
	"Security Alert: Someone tried to access your Google account. Click here to change your password immediately.",
	"Congratulations winner! You've been selected for our giveaway. Claim your prize by providing personal information.",
	"Your Chase account requires immediate attention. Log in through this link to avoid account closure.",
}

var legitimateSamples = []string{
	"Hi team, just a reminder about our weekly meeting tomorrow at 10 AM. Please review the agenda I sent earlier.",
	"Thank you for your order! Your package has been shipped and will arrive within 3-5 business days. Tracking number: ABC123.",
	"Dear colleague, I've attached the quarterly report for your review. Let me know if you have any questions.",
	"Meeting notes from yesterday's discussion. Action items are listed at the bottom. Please confirm your tasks.",
	"Happy birthday! Wishing you a wonderful day filled with joy and celebration. Hope to see you at the party!",
	"Hi, I wanted to follow up on our conversation about the project deadline. Can we schedule a call this week?",
	"Your monthly statement is now available. You can view it by logging into your account through our official app.",
	"Team update: We've successfully completed the first phase of the project. Great work everyone!",
	"Reminder: The office will be closed on Monday for the holiday. Enjoy the long weekend!",
	"Hi, thanks for connecting at the conference. I'd love to discuss potential collaboration opportunities.",
	"Your subscription renewal is coming up. You can manage your preferences in your account settings.",
	"Please find attached the invoice for last month's services. Payment is due within 30 days.",
	"Just wanted to check in and see how you're doing. Let's catch up over coffee sometime.",
	"The new company policy document is now available on the intranet. Please review at your convenience.",
	"Thank you for your feedback! We appreciate your input and will use it to improve our services.",
	"Hi, here are the meeting minutes from our last discussion. Please let me know if I missed anything.",
	"Your flight confirmation for next week. Please arrive at the airport 2 hours before departure.",
	"Project status update: We're on track to meet the deadline. Attached is the progress report.",
	"Welcome to our newsletter! Here's what's happening this month in our community.",
	"Friendly reminder about the upcoming training session next Tuesday. Please register if you haven't already.",
}
